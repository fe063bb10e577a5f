// Package config provides type-safe environment variable loading with
// per-type caching. It loads a .env file on first use and parses variables
// into struct fields via caarlos0/env struct tags.
//
//	type SMTPConfig struct {
//		Host string `env:"SMTP_SERVER,required"`
//		Port int    `env:"SMTP_PORT" envDefault:"587"`
//	}
//
//	var cfg SMTPConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each configuration type is loaded once per process; subsequent Load calls
// for the same type return the cached value.
package config
