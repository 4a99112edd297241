// Package digest cuts a genome into restriction fragments, either at the recognition sites of
// one or more enzymes or into chunks of fixed size, and writes the fragments_list.txt and
// info_contigs.txt tables describing them.
package digest
