/*

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

// Package main implements resloc, a command-line front end over
// pkg/builder, pkg/importer, and pkg/resolver: compile a source directory
// into a sealed snapshot, resolve one or more resources under a context,
// or dump the resolved resource tree.
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/resolvectx/resloc/internal/logutils"
	"github.com/resolvectx/resloc/internal/version"
)

var debugLogs bool

var rootCmd = &cobra.Command{
	Use:     "resloc",
	Version: version.Version,
	Short:   "Compile and resolve context-sensitive resources",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug-logs", false, "shows verbose logs")
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newTreeCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootLogger() logr.Logger {
	return logutils.New(debugLogs)
}
