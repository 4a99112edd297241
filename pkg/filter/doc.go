// Package filter analyses the content of a 3C library and removes spurious events such as loops and
// uncuts to improve the overall signal.
//
// Filtering excludes +- and -+ intrachromosomal pairs whose reads are closer than a threshold, counted
// in restriction fragments. The threshold is the distance below which the abundance of these events
// deviates from the rest of the library. It is estimated from the data using the median absolute
// deviation of pairs at longer distances, or entered by the user.
package filter
