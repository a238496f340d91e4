// Package config provides configuration parsing for the rxstate CLI.
//
// The configuration is stored in rxstate.yaml. Every key is optional;
// absent keys take the defaults from New.
//
// # Configuration File Structure
//
//	log:
//	  level: info        # debug, info, warn, error
//	  format: text       # text or json
//	metrics:
//	  enabled: true
//	  namespace: rxstate
//	  subsystem: statestream
//	  addr: ":9090"      # serve /metrics and /healthz when set
//	tracing:
//	  enabled: false
//	  tracerName: rxstate
//	updates:
//	  log: true          # install the logging plugin
//	  values: false      # include state values in update records
//
// # Usage
//
//	cfg, err := config.LoadFile("rxstate.yaml")
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
package config
