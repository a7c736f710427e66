// Package accounting turns a trade's raw entry and exit lots into derived
// metrics: average prices, FIFO realized P&L, reward:risk, holding days,
// portfolio impact, open heat and position status.
//
// Every function in this package is pure. Nothing here performs I/O or
// keeps state between calls, so all of it is safe for concurrent use.
package accounting
