/*
Package status renders the outcome of a sync run.

🎯 Purpose:
- FormatOutcome prints one coloured line per record
- Summary carries the run id, timing and counters, and encodes to JSON
- RenderSummary draws the counters as a table
- Metrics writes the last run to a node-exporter textfile
*/
package status
