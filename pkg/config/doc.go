/*
Package config loads and validates the certsync configuration.

	            +-------------+
	            |   Config    |
	            +------+------+
	                   |
	      +-----------+-----------+-----------+
	      |           |           |           |
	+-----+-----+ +---+---+ +-----+-----+ +---+---+
	|   YAML    | |  HCL  | |   JSON    | |  Env  |
	+-----------+ +-------+ +-----------+ +-------+

🎯 Purpose:
- Reads one file, picking the parser from its extension
- Overlays secrets from CERTSYNC_* environment variables
- Fills defaults, then validates the result

🔄 Flow:
1. Load reads the file
2. GetParser selects the format
3. ApplyEnv and ApplyDefaults complete the values
4. Validate checks required fields, company aliases and table categories

🤝 Interfaces:
- Parser: format-specific decoding, registered from init
*/
package config
