package engine

import "github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"

// Mix blends two pattern frames into dst using alpha (0..1). Both inputs are flattened over black
// first so a transparent point fades like an unlit one; the result is opaque.
func Mix(dst, a, b []pixel.Color, alpha float64) {
	switch {
	case alpha <= 0:
		for i := range dst {
			dst[i] = flatten(a[i])
		}
		return
	case alpha >= 1:
		for i := range dst {
			dst[i] = flatten(b[i])
		}
		return
	}
	for i := range dst {
		ar, ag, ab := flatten(a[i]).Floats()
		br, bg, bb := flatten(b[i]).Floats()
		dst[i] = pixel.FromFloat(
			ar*(1-alpha)+br*alpha,
			ag*(1-alpha)+bg*alpha,
			ab*(1-alpha)+bb*alpha,
		)
	}
}

func flatten(c pixel.Color) pixel.Color {
	if c.A() == pixel.MaxChannel {
		return c
	}
	return c.Scale(float64(c.A()) / pixel.MaxChannel).WithA(pixel.MaxChannel)
}
