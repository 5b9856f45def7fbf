// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

import (
	"fmt"
	"os"

	"github.com/Fantom-foundation/Vela/go/vela"
)

func init() {
	// The default configuration used in production.
	vela.MustRegisterInterpreterFactory("evm", factory(Config{}))

	// Diagnostic configurations.
	vela.MustRegisterInterpreterFactory("evm-logging", factory(Config{
		runner: loggingRunner{log: os.Stderr},
	}))
	vela.MustRegisterInterpreterFactory("evm-stats", func(any) (vela.Interpreter, error) {
		return NewInterpreter(Config{runner: &statisticRunner{stats: newStatistics()}})
	})
	vela.MustRegisterInterpreterFactory("evm-no-analysis-cache", factory(Config{
		AnalysisCacheSize: -1,
	}))
}

// factory creates an interpreter factory using the given default
// configuration. A Config passed to the factory takes precedence.
func factory(defaults Config) vela.InterpreterFactory {
	return func(config any) (vela.Interpreter, error) {
		switch c := config.(type) {
		case nil:
			return NewInterpreter(defaults)
		case Config:
			if c.runner == nil {
				c.runner = defaults.runner
			}
			return NewInterpreter(c)
		}
		return nil, fmt.Errorf("unsupported configuration type %T", config)
	}
}

// Config defines the configuration of an interpreter instance.
type Config struct {
	// AnalysisCacheSize is the number of jump destination analyses retained.
	// Zero selects the default size, negative values disable the cache.
	AnalysisCacheSize int
	runner            runner
}

const defaultAnalysisCacheSize = 1 << 14

type evm struct {
	config   Config
	analyzer *analyzer
}

// NewInterpreter creates a bytecode interpreter with the given
// configuration.
func NewInterpreter(config Config) (*evm, error) {
	if config.AnalysisCacheSize == 0 {
		config.AnalysisCacheSize = defaultAnalysisCacheSize
	}
	analyzer, err := newAnalyzer(config.AnalysisCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create code analyzer: %v", err)
	}
	return &evm{config: config, analyzer: analyzer}, nil
}

func (e *evm) Run(params vela.Parameters) (vela.Result, error) {
	return run(interpreterConfig{
		analyzer: e.analyzer,
		runner:   e.config.runner,
	}, params)
}

func (e *evm) DumpProfile() {
	if statsRunner, ok := e.config.runner.(*statisticRunner); ok {
		fmt.Print(statsRunner.getSummary())
	}
}

func (e *evm) ResetProfile() {
	if statsRunner, ok := e.config.runner.(*statisticRunner); ok {
		statsRunner.reset()
	}
}
