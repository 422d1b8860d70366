// Package flat composes a two-page spread into a single letterboxed image
// for the non-animated view.
//
// Each page is scaled to fit half of the target width, keeping its aspect
// ratio, and the pair is centred on a solid background with the left page
// against the right one at the middle of the image. A spread with a single
// page shows it in the left half.
//
//	img, err := flat.Compose(ctx, doc, []int{4, 5}, 1280, 800, 2)
package flat
