package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"archgen/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is the version stamp for newly written records.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeArchitecture(a model.Architecture) ([]byte, error) {
	return json.Marshal(a)
}

func DecodeArchitecture(data []byte) (model.Architecture, error) {
	var arch model.Architecture
	if err := json.Unmarshal(data, &arch); err != nil {
		return model.Architecture{}, err
	}
	if err := checkVersion(arch.VersionedRecord); err != nil {
		return model.Architecture{}, err
	}
	return arch, nil
}

func EncodeBatch(b model.Batch) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBatch(data []byte) (model.Batch, error) {
	var batch model.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return model.Batch{}, err
	}
	if err := checkVersion(batch.VersionedRecord); err != nil {
		return model.Batch{}, err
	}
	return batch, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
