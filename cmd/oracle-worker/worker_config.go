package main

import (
	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
)

type WorkerConfigJson struct {
	LoggerConf   logger.LoggerConfigJson     `json:"logger"`
	RabbitmqConf rabbitmq.RabbitmqConfigJson `json:"rabbitmq"`
	OracleConf   OracleConfigJson            `json:"oracle"`
}

func (wcj WorkerConfigJson) ConvertToDomain() WorkerConfig {
	return WorkerConfig{
		LoggerConf:   wcj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: wcj.RabbitmqConf.ConvertToDomain(),
		OracleConf:   wcj.OracleConf.ConvertToDomain(),
	}
}

type WorkerConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	OracleConf   OracleConfig
}

// OracleConfigJson holds the worker's decryption material: the sealed-operand
// key and the attestation secret shared with the api.
type OracleConfigJson struct {
	SchemeKey  string `json:"scheme_key"`
	HmacSecret string `json:"hmac_secret"`
}

type OracleConfig struct {
	SchemeKey  string
	HmacSecret string
}

func (ocj OracleConfigJson) ConvertToDomain() OracleConfig {
	return OracleConfig{
		SchemeKey:  ocj.SchemeKey,
		HmacSecret: ocj.HmacSecret,
	}
}
