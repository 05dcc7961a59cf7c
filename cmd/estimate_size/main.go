package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/td0m/dayplan/pkg/persist"
	"github.com/td0m/dayplan/pkg/task"
)

// Measures how the one-file-per-collection layout holds up after years of
// daily use.
func main() {
	years := 10
	perDay := 30
	total := 365 * perDay * years

	dir, err := os.MkdirTemp("", "dayplan-estimate-*")
	check(err)
	defer os.RemoveAll(dir)
	p := persist.New(persist.InFiles(dir))

	start := time.Now().AddDate(-years, 0, 0)
	priorities := []task.Priority{task.Low, task.Medium, task.High}
	tasks := make([]task.Task, total)
	for i := range tasks {
		created := start.Add(time.Duration(i) * 24 * time.Hour / time.Duration(perDay))
		tasks[i] = task.Task{
			ID:          i + 1,
			Title:       randomString(30),
			Description: randomString(80),
			DueDate:     created.AddDate(0, 0, rand.IntN(14)),
			Priority:    priorities[rand.IntN(len(priorities))],
			Category:    "Work",
			Completed:   true,
			Status:      task.Completed,
			CreatedAt:   created,
		}
	}

	writeTime := measureTime(func() {
		check(p.Save(task.TasksKey, tasks))
	})

	var loaded []task.Task
	readTime := measureTime(func() {
		loaded = persist.Load[[]task.Task](p, task.TasksKey, nil)
	})
	if len(loaded) != total {
		check(fmt.Errorf("read %d tasks back, wrote %d", len(loaded), total))
	}

	info, err := os.Stat(filepath.Join(dir, task.TasksKey+".json"))
	check(err)
	fmt.Printf("Tasks: %d years, %d per day (%d total)\n", years, perDay, total)
	fmt.Printf("File size: %dMB\n", info.Size()/1024/1024)
	fmt.Printf("Write time: %dms\n", writeTime.Milliseconds())
	fmt.Printf("Read time: %dms\n", readTime.Milliseconds())
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func measureTime(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "

func randomString(l int) string {
	b := make([]byte, l)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return string(b)
}
