// Package source loads governance rules from YAML files and keeps them
// current as the files change.
//
// A rules document looks like:
//
//	rules:
//	  - id: nw-quality
//	    name: Net worth quality floor
//	    rule_type: quality_threshold
//	    enabled: true
//	    applies_to:
//	      domains: [netWorth]
//	    config:
//	      threshold: 60
//	      severity: high
//	      auto_emit_exception: true
//	      exception_category: data_quality
//
// Registry holds the live rule set; Registry.Watch reloads it through an
// fsnotify watcher with debouncing so editors that write files in several
// steps trigger a single reload.
package source
