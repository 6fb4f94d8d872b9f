// Package config provides configuration parsing for scribe archives.
//
// The configuration is stored in scribe.json next to the archive's data.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "market-data-archive",
//	  "control": {
//	    "host": "localhost",
//	    "port": 8010,
//	    "maxSessions": 64,
//	    "sessionTimeout": "10s",
//	    "idleStrategy": "backoff"
//	  },
//	  "admin": {
//	    "host": "localhost",
//	    "port": 8020
//	  },
//	  "auth": {
//	    "secretFile": "/etc/scribe/secret"
//	  },
//	  "offload": {
//	    "dir": "segments"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Control:", cfg.ControlAddress())
package config
