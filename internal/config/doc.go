// Package config holds the crawler's configuration.
//
// Values come from three places, later ones winning:
//  1. the defaults in NewConfig,
//  2. the YAML file found by FindConfigFile (".crawler" in the current
//     directory, then in the home directory),
//  3. command-line flags the user set explicitly.
//
// Seed URLs are validated separately by ParseSeeds, which reports every
// invalid seed at once.
package config
