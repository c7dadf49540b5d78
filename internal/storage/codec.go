package storage

import (
	"encoding/json"
	"errors"

	"neuroplex/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeCircuit(c model.Circuit) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeCircuit(data []byte) (model.Circuit, error) {
	var circuit model.Circuit
	if err := json.Unmarshal(data, &circuit); err != nil {
		return model.Circuit{}, err
	}
	if err := checkVersion(circuit.VersionedRecord); err != nil {
		return model.Circuit{}, err
	}
	return circuit, nil
}

func EncodeTickRecord(rec model.TickRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeTickRecord(data []byte) (model.TickRecord, error) {
	var rec model.TickRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.TickRecord{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return model.TickRecord{}, err
	}
	return rec, nil
}

func EncodeRunSummary(s model.RunSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeRunSummary(data []byte) (model.RunSummary, error) {
	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return summary, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
