// Package geom provides the 2D contour data model and winding-based
// classification used by the toolpath engine.
package geom
