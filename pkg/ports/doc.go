/*
Package ports defines the driven ports (interfaces) between the espalier
core and its adapters.

These interfaces decouple the graph core from storage backends: the same
editor session can keep its drafts in memory, on Redis, or anywhere else a
DraftStore implementation puts them.
*/
package ports
