// Command vectorcsvbench generates a synthetic CSV file and times
// vectorcsv parsing it, the way entreya-csvquery's cmd/benchmark generates
// a file and times its indexer over it.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/vectorcsv/vectorcsv"
)

func main() {
	sizeMB := 500
	if len(os.Args) >= 2 {
		fmt.Sscanf(os.Args[1], "%d", &sizeMB)
	}
	threads := runtime.NumCPU()
	if len(os.Args) >= 3 {
		fmt.Sscanf(os.Args[2], "%d", &threads)
	}

	fmt.Printf("Generating %d MB CSV...\n", sizeMB)
	tmpDir, err := os.MkdirTemp("", "vectorcsv_bench")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "bench.csv")
	rows, bytesWritten := generate(csvPath, int64(sizeMB)*1024*1024)
	fmt.Printf("Generated %d rows (%.2f MB)\n", rows, float64(bytesWritten)/1024/1024)

	fmt.Printf("Parsing with nthreads=%d...\n", threads)
	opts := vectorcsv.Options{
		Separator:    ',',
		NThreads:     threads,
		NHeaderRows:  1,
		MissingFloat: 0,
	}

	start := time.Now()
	result, err := vectorcsv.ParseFile(csvPath, opts)
	if err != nil {
		panic(err)
	}
	elapsed := time.Since(start)

	mbPerSec := float64(bytesWritten) / 1024 / 1024 / elapsed.Seconds()
	fmt.Printf("\n--------------------------------------------------\n")
	fmt.Printf("Rows:        %d\n", result.Rows)
	fmt.Printf("Columns:     %d\n", len(result.Columns))
	fmt.Printf("Chunks:      %d\n", result.Stats.Chunks)
	fmt.Printf("Wide SIMD:   %v\n", result.Stats.WideSIMD)
	fmt.Printf("Throughput:  %.2f MB/s\n", mbPerSec)
	fmt.Printf("Time:        %v\n", elapsed)
	fmt.Printf("--------------------------------------------------\n")
}

// generate writes a synthetic "id,code,value,description" CSV to path
// until at least limit bytes have been written, returning the row and
// byte counts actually produced.
func generate(path string, limit int64) (rows int, bytesWritten int64) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 64*1024)
	hn, _ := w.WriteString("id,code,value,description\n")
	bytesWritten = int64(hn)

	rng := rand.New(rand.NewSource(123))
	buf := make([]byte, 0, 1024)

	for bytesWritten < limit {
		rows++
		buf = buf[:0]
		buf = fmt.Appendf(buf, "%d,US-%d,%d,\"Description for item %d with some padding to make it longer\"\n",
			rows, rng.Intn(1000), rng.Intn(10000), rows)
		n, _ := w.Write(buf)
		bytesWritten += int64(n)
	}
	w.Flush()
	return rows, bytesWritten
}
