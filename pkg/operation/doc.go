/*
Package operation drives a certificate sync run.

	+----------+     +-----------+     +---------+
	|  Source  | --> | Processor | --> | Archive |
	+----------+     +-----+-----+     +---------+
	                       |
	                 +-----+-----+
	                 |  Fetcher  |
	                 +-----------+

🔄 Flow:
1. Run checks the companies and opens the sessions through the Connector
2. Tables are visited category by category, records one at a time
3. Processor resolves the company and the user tax code, then skips
   certificates already archived
4. Missing ones are downloaded, checked for the PDF signature and uploaded
5. Outcomes are counted in Stats and reported through OnResult

Per-record failures never stop the run. Only an empty company map, invalid
options or a failed bootstrap make Run return an error.
*/
package operation
