// Package driving defines the inbound ports of the sync pipeline: the use
// case interfaces the CLI drives. Core services implement these.
package driving
