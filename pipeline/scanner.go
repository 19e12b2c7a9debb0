package pipeline

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/donutnomad/recordgen/withergen"
)

// fileResult 单个文件的扫描结果
type fileResult struct {
	classes []*withergen.ClassDescriptor
	matched bool
	err     error
}

// CollectFiles 收集根目录下所有需要扫描的源文件
// 结果按路径排序，保证多次运行的输出一致
func CollectFiles(root string, opts *RunOptions) ([]string, error) {
	opts = opts.withDefaults()
	outputName := filepath.Base(opts.Output)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			// 跳过隐藏目录（如 .git）
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !IsSourceFile(name, opts) || name == outputName {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "遍历目录 %s 失败", root)
	}

	slices.Sort(files)
	return files, nil
}

// IsSourceFile 检查文件名是否需要参与扫描
// 后缀必须匹配，且文件名不能包含排除片段（如 "Generated"）
func IsSourceFile(name string, opts *RunOptions) bool {
	opts = opts.withDefaults()

	if !lo.ContainsBy(opts.Extensions, func(ext string) bool {
		return strings.HasSuffix(name, ext)
	}) {
		return false
	}

	return !lo.ContainsBy(opts.Exclude, func(part string) bool {
		return part != "" && strings.Contains(name, part)
	})
}

// scanFiles 并行扫描文件
// 先做快速文本匹配，只有包含 partial class 的文件才逐行扫描
// 结果按传入顺序返回；任意文件读取失败都会使整体失败
func scanFiles(ctx context.Context, files []string, scanner *withergen.Scanner, workers int) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	indexCh := make(chan int, len(files))

	// 启动工作者
	var wg sync.WaitGroup
	for i := 0; i < min(workers, len(files)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-indexCh:
					if !ok {
						return
					}
					results[idx] = scanFile(files[idx], scanner)
				}
			}
		}()
	}

	// 发送文件
	for i := range files {
		indexCh <- i
	}
	close(indexCh)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, r := range results {
		if r.err != nil {
			return nil, errors.Wrapf(r.err, "扫描 %s 失败", files[i])
		}
	}
	return results, nil
}

// scanFile 读取并扫描单个文件
func scanFile(path string, scanner *withergen.Scanner) fileResult {
	content, err := readFile(path)
	if err != nil {
		return fileResult{err: err}
	}

	if !withergen.QuickMatch(string(content)) {
		return fileResult{}
	}

	classes := scanner.ScanString(string(content))
	for _, c := range classes {
		c.File = path
	}
	return fileResult{classes: classes, matched: true}
}

// readFile 打开并完整读取文件，任何路径上都会关闭句柄
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
