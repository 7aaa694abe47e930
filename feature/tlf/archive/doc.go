// Package archive keeps a copy of every published snapshot in object storage.
//
// Objects are laid out as <prefix>/YYYY/MM/DD/HHMMSS.nnnnnnnnn.json by fetch
// time, so a day of snapshots is one prefix listing.
package archive
