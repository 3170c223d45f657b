/*
Copyright (c) Facebook, Inc. and its affiliates.

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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opentimetools/timekit/alarm"
	"github.com/opentimetools/timekit/check"
)

// flags
var monitorIntervalFlag time.Duration
var monitorPortFlag int

type monitorMetrics struct {
	checksOK     prometheus.Gauge
	checksFailed prometheus.Gauge
	jitterMean   prometheus.Gauge
	jitterMax    prometheus.Gauge
	runs         prometheus.Counter
}

func newMonitorMetrics(reg *prometheus.Registry) *monitorMetrics {
	m := &monitorMetrics{
		checksOK:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "delaycheck_checks_ok", Help: "checks that passed in the last run"}),
		checksFailed: prometheus.NewGauge(prometheus.GaugeOpts{Name: "delaycheck_checks_failed", Help: "checks that failed in the last run"}),
		jitterMean:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "delaycheck_jitter_mean_ns", Help: "mean observation bracket width of the last run"}),
		jitterMax:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "delaycheck_jitter_max_ns", Help: "max observation bracket width of the last run"}),
		runs:         prometheus.NewCounter(prometheus.CounterOpts{Name: "delaycheck_runs_total", Help: "completed check runs"}),
	}
	reg.MustRegister(m.checksOK, m.checksFailed, m.jitterMean, m.jitterMax, m.runs)
	return m
}

func (m *monitorMetrics) update(r *check.Report) {
	failed := r.Failed()
	m.checksOK.Set(float64(len(r.Results) - failed))
	m.checksFailed.Set(float64(failed))
	m.jitterMean.Set(float64(r.Jitter.Mean))
	m.jitterMax.Set(float64(r.Jitter.Max))
	m.runs.Inc()
}

func runMonitor(ctx context.Context, cfg *check.Config, interval time.Duration, port int) error {
	al := alarm.New()
	defer al.Close()

	reg := prometheus.NewRegistry()
	metrics := newMonitorMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Close()
	})
	g.Go(func() error {
		for {
			report := check.NewChecker(cfg, al).Run()
			metrics.update(report)
			for _, res := range report.Results {
				if res.Status != check.OK {
					log.Warningf("%s %s: %s", res.Status, res.Name, res.Msg)
				}
			}
			log.Infof("run complete: %d/%d checks ok, jitter mean %v max %v",
				len(report.Results)-report.Failed(), len(report.Results), report.Jitter.Mean, report.Jitter.Max)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	})
	return g.Wait()
}

func init() {
	RootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().DurationVarP(&monitorIntervalFlag, "interval", "i", time.Minute, "how often to re-run the checks")
	monitorCmd.Flags().IntVarP(&monitorPortFlag, "monitoringport", "p", 8889, "port to serve /metrics on")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Re-run the timing checks on an interval and export prometheus metrics.",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		cfg, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := runMonitor(ctx, cfg, monitorIntervalFlag, monitorPortFlag); err != nil && err != context.Canceled {
			log.Fatal(err)
		}
	},
}
