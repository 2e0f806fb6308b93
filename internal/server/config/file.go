package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for JSON and YAML config files. Durations accept
// "30m" as well as integer nanoseconds.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	StoreMode                   string         `json:"store_mode" yaml:"store_mode"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the values found in the file at path onto config. Keys
// missing from the file keep their current values. The format is chosen by
// extension: .yaml/.yml is YAML, anything else JSON.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := fromConfig(config)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func fromConfig(c *Config) *FileConfig {
	return &FileConfig{
		EndpointAddrHTTP:            c.EndpointAddrHTTP,
		EndpointAddrGRPC:            c.EndpointAddrGRPC,
		DatabaseDSN:                 c.DatabaseDSN,
		StoreMode:                   c.StoreMode,
		SecretKey:                   c.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: c.AccessTokenValidityDuration},
		S3RootUser:                  c.S3RootUser,
		S3RootPassword:              c.S3RootPassword,
		S3Bucket:                    c.S3Bucket,
		S3Region:                    c.S3Region,
		S3BaseEndpoint:              c.S3BaseEndpoint,
		ShutdownTimeout:             timex.Duration{Duration: c.ShutdownTimeout},
		LogLevel:                    c.LogLevel,
	}
}

func (fc *FileConfig) apply(c *Config) {
	c.EndpointAddrHTTP = fc.EndpointAddrHTTP
	c.EndpointAddrGRPC = fc.EndpointAddrGRPC
	c.DatabaseDSN = fc.DatabaseDSN
	c.StoreMode = fc.StoreMode
	c.SecretKey = fc.SecretKey
	c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	c.S3RootUser = fc.S3RootUser
	c.S3RootPassword = fc.S3RootPassword
	c.S3Bucket = fc.S3Bucket
	c.S3Region = fc.S3Region
	c.S3BaseEndpoint = fc.S3BaseEndpoint
	c.ShutdownTimeout = fc.ShutdownTimeout.Duration
	c.LogLevel = fc.LogLevel
}
