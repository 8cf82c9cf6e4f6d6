// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the albert command line.
//
// Commands:
//
//	albert                    full-screen chat (plain chat when not a TTY)
//	albert chat [--plain]     chat, optionally line-oriented with history
//	albert ask <message...>   one message, print the reply
//	albert config ...         show, path, init, get, set, keys
//	albert history ...        list, show, export, delete, prune
//	albert version
//
// Global flags --config, --endpoint, --timeout and --verbose override the
// config file, which overrides the defaults. ALBERT_* environment variables
// sit between the file and the flags.
package cli
