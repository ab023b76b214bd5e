// Package config holds the command line surface of oxidize. Every value can
// also come from a JSON, YAML or TOML config file or from OXIDIZE_*
// environment variables.
package config

import "github.com/oxidize/oxidize/internal/cmd"

type Log struct {
	Level  string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"OXIDIZE_LOG_LEVEL"`
	File   string `help:"Write logs to this file instead of stdout" env:"OXIDIZE_LOG_FILE"`
	Format string `help:"Log format; auto picks text on a terminal and json otherwise" default:"auto" enum:"auto,text,json" env:"OXIDIZE_LOG_FORMAT"`
}

type CLI struct {
	Config string `help:"Path to a config file (json, yaml or toml)" type:"path" env:"OXIDIZE_CONFIG"`
	Log    Log    `embed:"" prefix:"log."`

	Generate  cmd.Generate      `cmd:"" help:"Generate native and managed bindings from program model files"`
	Scan      cmd.Scan          `cmd:"" help:"Print the merged and linked generation map"`
	Version   cmd.Version       `cmd:"" help:"Print the version"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
