/*
Package session owns the two authenticated transports a sync run needs.

	        +-------------+
	        |  Bootstrap  |
	        +------+------+
	               |
	     +---------+---------+
	     |                   |
	+----+----+        +-----+-----+
	| Archive |        |  Portal   |
	|  (SFTP) |        |  (HTTP)   |
	+---------+        +-----+-----+
	                         |
	                   +-----+-----+
	                   |CookieStore|
	                   +-----------+

🎯 Purpose:
- Opens the key-authenticated SFTP session to the certificate archive
- Logs into the learning platform with its token-protected form
- Downloads certificates under one cookie-bearing client

🔄 Flow:
1. Bootstrap dials the archive and logs in concurrently
2. Either failure releases whatever was acquired
3. Sessions.Close tears everything down at the end of the run

📝 Notes:
The cookie store lives in memory only and is dropped on Close, so no
session material outlives the run.
*/
package session
