// Package main is the entry point for the course recommendation service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/coursewise/course-recommender/cmd/course-recommender/app"
)

func main() {
	app.NewApp().Run()
}
