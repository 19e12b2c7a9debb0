package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/recordgen/pipeline"
	"github.com/donutnomad/recordgen/withergen"
)

func devOptions(t *testing.T, roots ...string) *pipeline.RunOptions {
	t.Helper()
	v, err := withergen.Lookup(withergen.DefaultVariant)
	require.NoError(t, err)
	return &pipeline.RunOptions{
		Roots:    roots,
		Variant:  v,
		Usings:   pipeline.DefaultUsings,
		Nullable: true,
		Output:   pipeline.DefaultOutput,
	}
}

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "A", "B"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	dirs, err := collectWatchDirs([]string{root, filepath.Join(root, "A")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "A"),
		filepath.Join(root, "A", "B"),
	}, dirs)

	_, err = collectWatchDirs([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestDevRunner_Routing(t *testing.T) {
	base := filepath.Join(t.TempDir(), "Assets")
	outer := filepath.Join(base, "Game")
	inner := filepath.Join(outer, "Data")
	require.NoError(t, os.MkdirAll(inner, 0o755))

	runner, err := newDevRunner(context.Background(), devOptions(t, outer, inner), time.Millisecond)
	require.NoError(t, err)
	defer runner.close()

	root, ok := runner.rootFor(filepath.Join(inner, "Widget.cs"))
	assert.True(t, ok)
	assert.Equal(t, inner, root)

	root, ok = runner.rootFor(filepath.Join(outer, "Rules", "Effect.cs"))
	assert.True(t, ok)
	assert.Equal(t, outer, root)

	_, ok = runner.rootFor(filepath.Join(base, "Other.cs"))
	assert.False(t, ok)

	assert.True(t, runner.isWatchedSource(filepath.Join(inner, "Widget.cs")))
	assert.False(t, runner.isWatchedSource(filepath.Join(inner, pipeline.DefaultOutput)))
	assert.False(t, runner.isWatchedSource(filepath.Join(inner, "WidgetGenerated.cs")))
	assert.False(t, runner.isWatchedSource(filepath.Join(inner, ".Generated.cs.123.tmp")))
	assert.False(t, runner.isWatchedSource(filepath.Join(inner, "notes.txt")))
}

func TestDevRunner_RegeneratesOnChange(t *testing.T) {
	root := newProject(t)
	output := filepath.Join(root, pipeline.DefaultOutput)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := newDevRunner(ctx, devOptions(t, root), 20*time.Millisecond)
	require.NoError(t, err)
	defer runner.close()

	done := make(chan error, 1)
	go func() { done <- runner.watchLoop() }()

	writeFile(t, filepath.Join(root, "Gadget.cs"), `public sealed partial class Gadget
{
  [Key(0)] public int Power { get; }
}
`)

	assert.Eventually(t, func() bool {
		content, err := os.ReadFile(output)
		return err == nil && strings.Contains(string(content), "public Gadget WithPower(int power) =>")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchLoop 未退出")
	}
}

func TestDevRunner_ClearPendingKeepsRearmedTimer(t *testing.T) {
	root := newProject(t)
	runner, err := newDevRunner(context.Background(), devOptions(t, root), time.Hour)
	require.NoError(t, err)
	defer runner.close()

	fired := time.NewTimer(time.Hour)
	defer fired.Stop()
	rearmed := time.NewTimer(time.Hour)
	defer rearmed.Stop()

	// 生成期间有新事件，记录已换成新的 timer
	runner.mu.Lock()
	runner.pendingRoots[root] = rearmed
	runner.clearPendingLocked(root, fired)
	assert.Same(t, rearmed, runner.pendingRoots[root])

	runner.clearPendingLocked(root, rearmed)
	assert.NotContains(t, runner.pendingRoots, root)
	runner.mu.Unlock()
}

func TestDevRunner_ScheduleReplacesPending(t *testing.T) {
	root := newProject(t)
	runner, err := newDevRunner(context.Background(), devOptions(t, root), time.Hour)
	require.NoError(t, err)
	defer runner.close()

	runner.scheduleGenerate(root)
	runner.mu.Lock()
	first := runner.pendingRoots[root]
	runner.mu.Unlock()
	require.NotNil(t, first)

	runner.scheduleGenerate(root)
	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.NotSame(t, first, runner.pendingRoots[root])
	assert.Len(t, runner.pendingRoots, 1)
	// 旧 timer 已被停止
	assert.False(t, first.Stop())
}
