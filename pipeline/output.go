package pipeline

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// WriteIfChanged 内容与磁盘一致时跳过写入，否则原子写入
// 返回是否真正写入
func WriteIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, content) {
			return false, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, errors.Wrapf(err, "读取 %s 失败", path)
	}

	if err := writeAtomic(path, content); err != nil {
		return false, err
	}
	return true, nil
}

// writeAtomic 先写入同目录的临时文件再重命名
// 失败时不会留下写了一半的输出文件
func writeAtomic(path string, content []byte) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "创建临时文件失败")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return errors.Wrapf(err, "写入 %s 失败", tmpName)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "同步 %s 失败", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "关闭 %s 失败", tmpName)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrapf(err, "设置 %s 权限失败", tmpName)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "重命名为 %s 失败", path)
	}
	return nil
}

// UnifiedDiff 生成磁盘内容与新内容之间的统一 diff，内容相同时返回空字符串
func UnifiedDiff(path string, current, generated []byte) (string, error) {
	if bytes.Equal(current, generated) {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(generated)),
		FromFile: path + " (当前)",
		ToFile:   path + " (生成)",
		Context:  3,
	})
	if err != nil {
		return "", errors.Wrap(err, "生成 diff 失败")
	}
	return diff, nil
}
