// This file is part of SparkBench.
//
// SparkBench is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SparkBench is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SparkBench.  If not, see <https://www.gnu.org/licenses/>.

// Package gui presents an SDL window for display peripherals. A Viewer
// mirrors the frame buffer of an SSD1306 model on the host screen,
// scaled up so the 128x64 panel is legible.
//
// SDL requires all calls to be made from the same OS thread. The
// Service function is intended to be called from the main goroutine at
// a regular interval; it polls for window events and refreshes the
// texture when the display's frame buffer has changed.
package gui

import (
	"github.com/sparkbench/sparkbench/hardware/peripherals/i2c"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// pixelDepth is the number of bytes per pixel in the image produced by
// the display model.
const pixelDepth = 4

// Viewer is an SDL window mirroring a display peripheral.
type Viewer struct {
	display *i2c.Display

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// NewViewer is the preferred method of initialisation for the Viewer
// type. The window is sized at the display's native resolution
// multiplied by scale.
func NewViewer(display *i2c.Display, scale int) (*Viewer, error) {
	if scale < 1 {
		scale = 1
	}

	vwr := &Viewer{display: display}

	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return nil, errors.Wrap(err, "sdl")
	}

	vwr.window, err = sdl.CreateWindow("SparkBench",
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(i2c.DisplayWidth*scale), int32(i2c.DisplayHeight*scale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return nil, errors.Wrap(err, "sdl")
	}

	vwr.renderer, err = sdl.CreateRenderer(vwr.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return nil, errors.Wrap(err, "sdl")
	}

	// the texture is the same size as the frame buffer. the renderer
	// scales it to the window
	vwr.texture, err = vwr.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		int32(i2c.DisplayWidth), int32(i2c.DisplayHeight))
	if err != nil {
		return nil, errors.Wrap(err, "sdl")
	}

	// an immediate redraw gives us a blank panel rather than window
	// garbage while we wait for the first frame
	err = vwr.redraw()
	if err != nil {
		return nil, err
	}

	return vwr, nil
}

// Service polls for window events and refreshes the mirrored frame
// buffer. Returns false when the window has been closed.
//
// MUST ONLY be called from the main goroutine.
func (vwr *Viewer) Service() (bool, error) {
	// drain the event queue. timing out straight away if there is
	// nothing pending
	for ev := sdl.WaitEventTimeout(1); ev != nil; ev = sdl.PollEvent() {
		switch ev.(type) {
		case *sdl.QuitEvent:
			return false, nil
		}
	}

	if vwr.display.Dirty() {
		err := vwr.redraw()
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

func (vwr *Viewer) redraw() error {
	img := vwr.display.Render()

	err := vwr.texture.Update(nil, img.Pix, i2c.DisplayWidth*pixelDepth)
	if err != nil {
		return errors.Wrap(err, "sdl")
	}

	err = vwr.renderer.Copy(vwr.texture, nil, nil)
	if err != nil {
		return errors.Wrap(err, "sdl")
	}

	vwr.renderer.Present()

	return nil
}

// Destroy releases the window and its SDL resources.
func (vwr *Viewer) Destroy() {
	vwr.texture.Destroy()
	vwr.renderer.Destroy()
	vwr.window.Destroy()
}
