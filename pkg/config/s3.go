package config

import (
	"fmt"
	"strings"
)

// S3Config configures the object storage used for product images.
// Endpoint is optional and supports S3-compatible stores; when set,
// path-style addressing is usually required as well.
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	PathStyle bool   `koanf:"pathStyle"`
}

// String returns a string representation of the S3 configuration.
func (c *S3Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- S3 ---\n")
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Bucket))
	b.WriteString(fmt.Sprintf("  region: %s\n", c.Region))
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", c.Endpoint))
	b.WriteString(fmt.Sprintf("  pathStyle: %t\n", c.PathStyle))
	return b.String()
}

func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("S3 bucket is not configured")
	}
	if c.Region == "" {
		return fmt.Errorf("S3 region is not configured")
	}
	return nil
}
