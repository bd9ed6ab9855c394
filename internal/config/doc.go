// Package config loads tote's settings.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/tote/config.toml)
//  3. A .env file in the working directory, loaded into the environment
//  4. TOTE_API_URL, TOTE_ENV, TOTE_STORAGE and TOTE_REDIS_ADDR
//
// A missing config file is not an error. Empty fields keep their defaults.
//
// # Defaults
//
//   - API origin: https://my-ecommerce-eta-ruby.vercel.app
//   - Data directory: ~/.local/share/tote
//   - Log file: <data_dir>/tote.log
//   - State file (file storage): <data_dir>/state.toml
//   - Storage: file
//   - Redis: 127.0.0.1:6379 with key prefix "tote:"
//   - Request timeout: 10 seconds
//
// # TOML Format
//
//	api_url = "http://localhost:5000"
//	data_dir = "~/.local/share/tote"
//	log_file = "~/.local/share/tote/tote.log"
//	env = "development"        # or "production" for JSON logs
//	storage = "file"           # file | redis | memory
//	redis_addr = "127.0.0.1:6379"
//	redis_prefix = "tote:"
//	request_timeout_seconds = 10
//
// Tilde expansion is applied to the config path, data_dir and log_file.
//
// # Error Handling
//
// Load returns errors for unreadable or malformed files, an unreadable .env
// and unknown storage names.
package config
