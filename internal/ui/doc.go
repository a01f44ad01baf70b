// Package ui turns shell command lifecycle events into short console lines.
package ui
