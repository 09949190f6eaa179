// Package frames turns a frame range and a task size into the ordered frame
// list handed to the render farm. Tasks are visited by repeatedly bisecting
// the largest unvisited gap, so the first and last tasks render first and the
// rest of the range fills in from the middle out. Artists see problems
// anywhere in the shot long before the whole job finishes.
package frames
