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
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opentimetools/timekit/alarm"
	"github.com/opentimetools/timekit/check"
)

var okString = color.GreenString("[ OK ]")
var warnString = color.YellowString("[WARN]")
var failString = color.RedString("[FAIL]")

var statusToColor = map[check.Status]string{
	check.OK:       okString,
	check.WARN:     warnString,
	check.FAIL:     failString,
	check.CRITICAL: failString,
}

func printResults(r *check.Report) int {
	failed := 0
	for _, res := range r.Results {
		if res.Status != check.OK {
			failed++
		}
		if res.Status == check.CRITICAL {
			fmt.Printf("%s %s: %s\n", failString, res.Name, res.Msg)
			return 127
		}
		fmt.Printf("%s %s: %s\n", statusToColor[res.Status], res.Name, res.Msg)
	}
	return failed
}

func printSummary(r *check.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetColWidth(40)
	table.SetHeader([]string{"metric", "value"})
	table.Append([]string{"poll samples", fmt.Sprintf("%d", r.Jitter.Samples)})
	table.Append([]string{"bracket width mean", r.Jitter.Mean.String()})
	table.Append([]string{"bracket width stddev", r.Jitter.Stddev.String()})
	table.Append([]string{"bracket width max", r.Jitter.Max.String()})
	if r.Sys != nil {
		table.Append([]string{"process cpu%", fmt.Sprintf("%.1f", r.Sys.CPUPct)})
		table.Append([]string{"process rss", fmt.Sprintf("%d", r.Sys.RSS)})
		table.Append([]string{"threads", fmt.Sprintf("%d", r.Sys.NumThreads)})
		table.Append([]string{"goroutines", fmt.Sprintf("%d", r.Sys.Goroutines)})
	}
	table.Render()
}

func init() {
	RootCmd.AddCommand(diagCmd)
}

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Run the timing checks once, report in human-readable form.",
	Long: `Run the timing checks once, report in human-readable form.
Exit code is the number of failed checks, or 127 when a liveness failure
cut the run short.
`,
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		cfg, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		al := alarm.New()
		report := check.NewChecker(cfg, al).Run()
		exitCode := printResults(report)
		printSummary(report)
		if err := al.Close(); err != nil {
			log.Errorf("releasing alarm facility: %v", err)
		}
		os.Exit(exitCode)
	},
}
