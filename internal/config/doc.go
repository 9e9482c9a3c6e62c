// Package config provides configuration parsing for reactor.
//
// The configuration is stored in reactor.json. Every section is optional;
// missing fields take the defaults from New.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reactor"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "reactor"
//	  },
//	  "runtime": {
//	    "goroutineCheck": true
//	  },
//	  "render": {
//	    "xhtml": false
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "template": "page.json",
//	    "state": "state.json"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
