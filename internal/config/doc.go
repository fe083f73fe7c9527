// Package config provides configuration parsing for the deeplink tools.
//
// The configuration is stored in deeplink.json, deeplink.yaml or
// deeplink.toml. This package handles loading, saving and validating it,
// and builds the account source it describes.
//
// # Configuration File Structure
//
//	accounts:
//	  - id: "1"
//	    host: mastodon.social
//	    family: mastodon
//	  - id: "2"
//	    host: bsky.app
//	    family: bluesky
//
//	accountSource:
//	  kind: inline        # inline, file or s3
//	  cacheTTL: 30s
//
//	server:
//	  host: localhost
//	  port: 8080
//	  metricsPath: /metrics
//
//	telemetry:
//	  logLevel: info
//	  metricsNamespace: deeplink
//	  tracing: true
//
// An S3 account source reads the same account document from an object:
//
//	accountSource:
//	  kind: s3
//	  bucket: links
//	  key: accounts.yaml
//	  region: eu-west-1
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src, err := cfg.Source()
package config
