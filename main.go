package main

import (
	"go.uber.org/zap"

	"einkscreen/pkg/canvas"
	"einkscreen/pkg/device/fbdev"
	"einkscreen/pkg/panel"
	"einkscreen/pkg/source"
)

func main() {
	logger, _ := zap.NewDevelopment()

	dev, err := fbdev.New(&fbdev.Options{Logger: logger})
	if err != nil {
		panic(err)
	}

	session, err := panel.Open(dev, logger)
	if err != nil {
		panic(err)
	}

	if err := session.Clear(canvas.White); err != nil {
		panic(err)
	}

	cv := session.Canvas()
	cv.Blit(source.Pattern(source.Checkerboard, cv.Width(), cv.Height(), 8), 0, 0)

	if err := session.Flush(); err != nil {
		panic(err)
	}

	if err := session.Update(); err != nil {
		panic(err)
	}

	if err := session.Close(); err != nil {
		panic(err)
	}
}
