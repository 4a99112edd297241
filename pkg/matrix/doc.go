// Package matrix loads Hi-C contact maps and prepares them for display: binning, normalisation
// and conversion to a dense symmetric matrix.
//
// Two text formats are read. GRAAL sparse files have a header line followed by
// "row col contacts" triplets. 2D bedgraph files have one contact per line as
// "chr1 start1 end1 chr2 start2 end2 contacts". The format is detected from the number of columns.
package matrix
