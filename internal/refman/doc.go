// Package refman binds metadata references into assembly symbols.
package refman
