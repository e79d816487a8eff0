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
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"ivy-charts/internal/charts"
	"ivy-charts/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the charts over HTTP",
	Long: `serve exposes every configured chart over HTTP. Each session keeps its own
view state per chart; GET /sessions/:id/charts/:chart returns the SVG of the
last transition.

A dataset that fails to load does not stop the server: chart endpoints answer
503 with the load error and /health reports "degraded".`,
	RunE: runServe,
}

var serveArgs struct {
	addr       string
	sessionTTL time.Duration
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(
		&serveArgs.addr,
		"addr",
		"",
		"Listen address, defaults to the configured addr",
	)
	flags.DurationVar(
		&serveArgs.sessionTTL,
		"session-ttl",
		server.DefaultSessionTTL,
		"Idle time after which a session is dropped, 0 keeps sessions forever",
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := klog.FromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, loadErr := loadData(ctx, cfg)
	if loadErr != nil {
		log.Error(loadErr, "dataset unavailable, serving without data", "source", cfg.Data)
		table, err := cfg.Table()
		if err != nil {
			return err
		}
		data = charts.NewData(nil, table)
	}
	cs, err := buildCharts(cfg, data)
	if err != nil {
		return err
	}

	addr := serveArgs.addr
	if addr == "" {
		addr = cfg.Addr
	}
	h := server.NewHandler(cs, cfg.Width, loadErr, log)
	h.SessionTTL = serveArgs.sessionTTL
	return server.Serve(ctx, addr, server.NewRouter(h))
}
