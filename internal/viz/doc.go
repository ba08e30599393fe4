// Package viz is the terminal front end of the sandbox.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: scene menu and parameter editor that opens the sandbox
//   - [Model]: the live sandbox, a world view next to a status panel
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//
// # Key Bindings
//
//	Space - Start/stop pouring
//	←/→   - Move the emitter
//	E     - Emit a batch
//	0-9   - Type a quantity, Enter to emit it
//	D     - Toggle draw mode; drag with the mouse to add a segment
//	R     - Reset the world
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// Recordings are saved as granular.gif in the current directory.
package viz
