/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	goflag "flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"ivy-charts/internal/charts"
	"ivy-charts/internal/config"
	"ivy-charts/internal/dataset"
)

// --- utils

// write templated message `tem` with `args` to stderr
func stderr(tem string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(tem, args...))
}

// panics with a "failed with 'blah' while doing 'something'" message
func panicOnErr(err error, action string) {
	if err != nil {
		panic(fmt.Sprintf("failed with '%s' while %s", err.Error(), action))
	}
}

// converts most data to an indented JSON string.
func as_json(thing interface{}) string {
	json_blob_bytes, err := json.Marshal(thing)
	panicOnErr(err, "marshalling JSON data into a byte array")
	var out bytes.Buffer
	json.Indent(&out, json_blob_bytes, "", "  ")
	return out.String()
}

// returns `true` if file at `path` exists.
func file_exists(path string) bool {
	_, err := os.Stat(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return false
	}
	return true
}

// writes `contents` to file at `path`, creating parent directories.
func spit(contents []byte, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, contents, 0o644)
}

// --- cli

var Cmd = &cobra.Command{
	Use:   "ivycharts",
	Short: "Ivy League admissions charts",
	Long: `ivycharts reads the Common Data Set extract of the Ivy League schools and
draws four charts from it: admission rates over time, admitted versus enrolled
students, financial aid and cost of attendance.

Charts can be written as animated SVG, exported as static images, inspected as
JSON or served over HTTP with per-session interaction state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var args struct {
	config string
	data   string
}

func init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(
		&args.config,
		"config",
		"",
		"Path to a yaml config overlaid on the built-in defaults",
	)
	flags.StringVar(
		&args.data,
		"data",
		"",
		"Dataset source, overrides the config and $"+config.EnvData,
	)

	klogFlags := goflag.NewFlagSet("klog", goflag.ExitOnError)
	klog.InitFlags(klogFlags)
	flags.AddGoFlagSet(klogFlags)

	Cmd.AddCommand(renderCmd, exportCmd, inspectCmd, serveCmd)
}

// loadConfig reads the config named by --config and applies --data.
func loadConfig() (*config.Config, error) {
	if args.config != "" && !file_exists(args.config) {
		return nil, fmt.Errorf("config file not found: %s", args.config)
	}
	cfg, err := config.Load(args.config)
	if err != nil {
		return nil, err
	}
	if args.data != "" {
		cfg.Data = args.data
	}
	return cfg, nil
}

// loadData fetches the configured dataset and binds it to the school table.
func loadData(ctx context.Context, cfg *config.Config) (*charts.Data, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	loader := &dataset.Loader{Token: cfg.Token}
	rows, err := loader.Load(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	data := charts.NewData(rows, table)
	for _, d := range data.Duplicates() {
		klog.FromContext(ctx).Info("duplicate rows, using the first", "school", d.School, "year", d.Year, "count", d.Count)
	}
	return data, nil
}

func buildCharts(cfg *config.Config, data *charts.Data) ([]*charts.Chart, error) {
	opts, err := cfg.ChartOptions()
	if err != nil {
		return nil, err
	}
	cs := make([]*charts.Chart, 0, len(opts))
	for _, o := range opts {
		ch, err := charts.New(o, data)
		if err != nil {
			return nil, err
		}
		cs = append(cs, ch)
	}
	return cs, nil
}

// selectCharts returns the chart called `name`, or all of them for "all".
func selectCharts(cs []*charts.Chart, name string) ([]*charts.Chart, error) {
	if name == "" || name == "all" {
		return cs, nil
	}
	for _, ch := range cs {
		if ch.Name() == name {
			return []*charts.Chart{ch}, nil
		}
	}
	return nil, fmt.Errorf("unknown chart %q", name)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = klog.NewContext(ctx, klog.Background())

	err := Cmd.ExecuteContext(ctx)
	stop()
	klog.Flush()
	if err != nil {
		stderr("%v", err)
		os.Exit(1)
	}
}
