// Package dataset reads and writes the CSV tables exchanged between the
// harvesting stages.
//
// ChannelFile is the CSV implementation of catalog.ChannelTable and
// OutputFile the CSV implementation of catalog.RowWriter. Both replace their
// destination atomically. Concat merges several output tables into one,
// projecting every row onto the header of the first file found.
package dataset
