package main

import (
	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
)

type ApiConfigJson struct {
	LoggerConf   logger.LoggerConfigJson     `json:"logger"`
	RabbitmqConf rabbitmq.RabbitmqConfigJson `json:"rabbitmq"`
	RestConf     RestConfigJson              `json:"rest"`
	DatabaseConf DatabaseConfigJson          `json:"database"`
	OracleConf   OracleConfigJson            `json:"oracle"`
}

func (acj ApiConfigJson) ConvertToDomain() ApiConfig {
	return ApiConfig{
		LoggerConf:   acj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: acj.RabbitmqConf.ConvertToDomain(),
		RestConf:     acj.RestConf.ConvertToDomain(),
		DatabaseConf: acj.DatabaseConf.ConvertToDomain(),
		OracleConf:   acj.OracleConf.ConvertToDomain(),
	}
}

type ApiConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	RestConf     RestConfig
	DatabaseConf DatabaseConfig
	OracleConf   OracleConfig
}

func (ac ApiConfig) GetLoggerConfig() logger.LoggerConfig {
	return ac.LoggerConf
}

func (ac ApiConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return ac.RabbitmqConf
}

func (ac ApiConfig) GetRestApiPort() uint16 {
	return ac.RestConf.Port
}

func (ac ApiConfig) GetDatabaseConnectionString() string {
	return ac.DatabaseConf.ConnectionString
}

func (ac ApiConfig) GetOracleConfig() OracleConfig {
	return ac.OracleConf
}

type RestConfigJson struct {
	Port uint16 `json:"port"`
}

type RestConfig struct {
	Port uint16
}

func (rcj RestConfigJson) ConvertToDomain() RestConfig {
	return RestConfig{
		Port: rcj.Port,
	}
}

type DatabaseConfigJson struct {
	ConnectionString string `json:"connection_string"`
}

type DatabaseConfig struct {
	ConnectionString string
}

func (dcj DatabaseConfigJson) ConvertToDomain() DatabaseConfig {
	return DatabaseConfig{
		ConnectionString: dcj.ConnectionString,
	}
}

// OracleConfigJson selects the attestation scheme the api verifies callbacks
// with. hmac_secret backs the hmac-sha256 scheme, verifying_key_path the
// groth16 one. scheme_key is the sealed-operand key shared with the oracle
// worker in the development profile.
type OracleConfigJson struct {
	AttestationScheme string `json:"attestation_scheme"`
	HmacSecret        string `json:"hmac_secret"`
	SchemeKey         string `json:"scheme_key"`
	VerifyingKeyPath  string `json:"verifying_key_path"`
}

type OracleConfig struct {
	AttestationScheme string
	HmacSecret        string
	SchemeKey         string
	VerifyingKeyPath  string
}

func (ocj OracleConfigJson) ConvertToDomain() OracleConfig {
	return OracleConfig{
		AttestationScheme: ocj.AttestationScheme,
		HmacSecret:        ocj.HmacSecret,
		SchemeKey:         ocj.SchemeKey,
		VerifyingKeyPath:  ocj.VerifyingKeyPath,
	}
}
