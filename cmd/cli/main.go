package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hamed0406/pinger/internal/domain"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:4100"
	}
	api = strings.TrimRight(api, "/")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(api + "/status")
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	var out struct {
		Monitors []domain.MonitorState `json:"monitors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Println("Unexpected response:", err)
		os.Exit(1)
	}

	printTable(os.Stdout, out.Monitors, time.Now())
}

func printTable(w io.Writer, monitors []domain.MonitorState, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tLATENCY\tDOWN FOR\tERROR\tLAST CHECKED\tURL")
	for _, m := range monitors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Name, m.Status, latency(m), downFor(m, now), errorType(m), lastChecked(m), m.URL)
	}
	tw.Flush()
}

func latency(m domain.MonitorState) string {
	if m.Latency == nil {
		return "-"
	}
	return fmt.Sprintf("%.0fms", *m.Latency)
}

func downFor(m domain.MonitorState, now time.Time) string {
	if m.DownSince == nil {
		return "-"
	}
	return now.Sub(*m.DownSince).Truncate(time.Second).String()
}

func errorType(m domain.MonitorState) string {
	if m.ErrorType == nil {
		return "-"
	}
	return string(*m.ErrorType)
}

func lastChecked(m domain.MonitorState) string {
	if m.LastChecked == nil {
		return "never"
	}
	return m.LastChecked.Local().Format(time.DateTime)
}
