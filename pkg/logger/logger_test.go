package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			log := Get()
			So(log, ShouldNotBeNil)
			So(func() {
				log.Info(context.Background(), "message", String("key", "value"))
			}, ShouldNotPanic)
		})

		Convey("Then Named returns a grouped logger", func() {
			log := Named("component")
			So(log, ShouldNotBeNil)
			So(func() {
				log.Debug(context.Background(), "debug message")
				log.Warn(context.Background(), "warn message")
				log.Error(context.Background(), "error message", Error(errors.New("boom")))
			}, ShouldNotPanic)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known names parse", func() {
			for _, level := range []string{"debug", "info", "warn", "warning", "error", "INFO", " Error "} {
				So(SetLevelString(level), ShouldBeNil)
			}
		})

		Convey("Then the empty string defaults to info", func() {
			So(SetLevelString(""), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, slog.LevelInfo)
		})

		Convey("Then an unknown name is rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then each carries its key and value", func() {
			So(String("k", "v"), ShouldResemble, Field{Key: "k", Value: "v"})
			So(Int("n", 7), ShouldResemble, Field{Key: "n", Value: 7})
			So(Bool("b", true), ShouldResemble, Field{Key: "b", Value: true})
			So(Duration("d", time.Second), ShouldResemble, Field{Key: "d", Value: time.Second})
			So(Any("a", 1.5), ShouldResemble, Field{Key: "a", Value: 1.5})

			err := errors.New("boom")
			So(Error(err), ShouldResemble, Field{Key: "error", Value: err})
		})
	})
}
