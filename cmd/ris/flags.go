// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix prefixes every environment variable bound to a flag, with
// dashes turned into underscores (--keep-compiler → RIS_KEEP_COMPILER).
const envPrefix = "RIS"

// opt is a single command-line option also readable from the
// environment.
type opt struct {
	flag  string
	short string
	dflt  interface{}
	desc  string
}

// newViper returns a viper instance reading RIS_* environment variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return v
}

// bindOptions defines opts on fs and registers each flag with v so that
// values resolve flag first, then environment, then default.
func bindOptions(fs *pflag.FlagSet, v *viper.Viper, opts []opt) {
	for _, o := range opts {
		switch d := o.dflt.(type) {
		case string:
			fs.StringP(o.flag, o.short, d, o.desc)
		case bool:
			fs.BoolP(o.flag, o.short, d, o.desc)
		default:
			panic(fmt.Errorf("unknown default type %T for --%s", o.dflt, o.flag))
		}
		if err := v.BindPFlag(o.flag, fs.Lookup(o.flag)); err != nil {
			panic(err)
		}
	}
}
