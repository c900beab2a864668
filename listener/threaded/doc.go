// SPDX-License-Identifier: GPL-3.0-or-later

// Package threaded implements the thread-per-connection tracker
// listener (one goroutine per accepted connection, blocking line
// reads), the simpler of the two listener models.
package threaded
