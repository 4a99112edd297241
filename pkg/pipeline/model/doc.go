// Package model holds the types shared by the pipeline package and its options:
// step descriptions, typed step outputs and the hooks a pipeline option implements.
package model
