// Package config provides the configuration of a report run: where the raw
// data comes from, which formats to produce, with which templates, and
// where to write them. Values come from built-in defaults, then from an
// optional .cnesreport YAML file, then from command line flags.
package config
