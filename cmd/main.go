/*
Copyright 2025 Extropy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	extropy "github.com/extropy-ai/extropy"
	"github.com/extropy-ai/extropy/config"
	"github.com/extropy-ai/extropy/database"
	"github.com/extropy-ai/extropy/internal/notification"
)

// Extropy represents the CLI application, encapsulating the root Cobra command.
type Extropy struct {
	cmd *cobra.Command
}

// extropyInstance holds the service instance and its configuration for use
// by the subcommands.
type extropyInstance struct {
	extropy *extropy.Extropy
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the service instance before
// running any command.
func preRun(app *extropyInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("extropy.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newExtropy, err := setupExtropy(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.extropy = newExtropy
		app.cnf = cnf

		return nil
	}
}

// setupExtropy creates the service instance, connecting to the configured
// data source.
func setupExtropy(cfg *config.Configuration) (*extropy.Extropy, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return &extropy.Extropy{}, fmt.Errorf("error getting datasource: %v", err)
	}

	newExtropy, err := extropy.NewExtropy(db)
	if err != nil {
		return &extropy.Extropy{}, fmt.Errorf("error creating extropy: %v", err)
	}
	return newExtropy, nil
}

// NewCLI creates the command-line interface for the ledger service.
func NewCLI() *Extropy {
	var configFile string
	e := &extropyInstance{}

	var rootCmd = &cobra.Command{
		Use:   "extropy",
		Short: "$EXTROPY token ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./extropy.json", "Configuration file for the ledger")

	rootCmd.PersistentPreRunE = preRun(e)

	rootCmd.AddCommand(serverCommands(e))
	rootCmd.AddCommand(workerCommands(e))
	rootCmd.AddCommand(migrateCommands(e))

	return &Extropy{cmd: rootCmd}
}

func (w Extropy) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
