package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/geophoto/internal/flagx"
	"github.com/dmitrijs2005/geophoto/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	DefaultMaxUploads           int64          `json:"default_max_uploads"`
	DefaultMaxStorageBytes      int64          `json:"default_max_storage_bytes"`
	MaxUploadRequestBytes       int64          `json:"max_upload_request_bytes"`
	TranscodeMaxDimension       int            `json:"transcode_max_dimension"`
	TranscodeJPEGQuality        int            `json:"transcode_jpeg_quality"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config
// command-line flags; if neither is set, no JSON file is loaded. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.DefaultMaxUploads != 0 {
		config.DefaultMaxUploads = c.DefaultMaxUploads
	}
	if c.DefaultMaxStorageBytes != 0 {
		config.DefaultMaxStorageBytes = c.DefaultMaxStorageBytes
	}
	if c.MaxUploadRequestBytes != 0 {
		config.MaxUploadRequestBytes = c.MaxUploadRequestBytes
	}
	if c.TranscodeMaxDimension != 0 {
		config.TranscodeMaxDimension = c.TranscodeMaxDimension
	}
	if c.TranscodeJPEGQuality != 0 {
		config.TranscodeJPEGQuality = c.TranscodeJPEGQuality
	}
}
