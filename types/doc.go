// Package types provides the enums and plain types shared across the avdecodestats project.
package types
