package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/keepsake/internal/client/gateway"
	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
	"github.com/avolkovs/keepsake/internal/pathtree"
)

// fakeGateway records every content and tree operation in order and can
// fail selected calls, so tests can assert the synchronizer's sequencing.
type fakeGateway struct {
	tree    string
	treeSet bool
	content map[string]string
	ops     []string

	failPut     map[string]error
	failDel     map[string]error
	failGet     map[string]error
	failRename  map[string]error
	failPutTree error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		content:    make(map[string]string),
		failPut:    make(map[string]error),
		failDel:    make(map[string]error),
		failGet:    make(map[string]error),
		failRename: make(map[string]error),
	}
}

func (f *fakeGateway) GetTree(ctx context.Context) (string, error) {
	f.ops = append(f.ops, "gettree")
	if !f.treeSet {
		return "", common.ErrorNotFound
	}
	return f.tree, nil
}

func (f *fakeGateway) PutTree(ctx context.Context, tree string) error {
	f.ops = append(f.ops, "puttree")
	if f.failPutTree != nil {
		return f.failPutTree
	}
	f.tree = tree
	f.treeSet = true
	return nil
}

func (f *fakeGateway) GetContent(ctx context.Context, path string) (string, error) {
	f.ops = append(f.ops, "get:"+path)
	if err := f.failGet[path]; err != nil {
		return "", err
	}
	c, ok := f.content[path]
	if !ok {
		return "", common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeGateway) PutContent(ctx context.Context, path, content string) error {
	f.ops = append(f.ops, "put:"+path)
	if err := f.failPut[path]; err != nil {
		return err
	}
	f.content[path] = content
	return nil
}

func (f *fakeGateway) DeleteContent(ctx context.Context, path string) error {
	f.ops = append(f.ops, "del:"+path)
	if err := f.failDel[path]; err != nil {
		return err
	}
	delete(f.content, path)
	return nil
}

func (f *fakeGateway) Rename(ctx context.Context, oldPath, newPath string) (string, error) {
	f.ops = append(f.ops, "rename:"+oldPath+">"+newPath)
	if err := f.failRename[oldPath]; err != nil {
		return "", err
	}
	c, ok := f.content[oldPath]
	if !ok {
		return "", common.ErrorNotFound
	}
	delete(f.content, oldPath)
	f.content[newPath] = c
	return f.tree, nil
}

func (f *fakeGateway) Register(ctx context.Context, userName, email, password string) error {
	return nil
}
func (f *fakeGateway) Login(ctx context.Context, userName, password string) error { return nil }
func (f *fakeGateway) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return nil
}
func (f *fakeGateway) CreateShare(ctx context.Context, req gateway.ShareRequest) (string, error) {
	return "", nil
}
func (f *fakeGateway) ListShares(ctx context.Context) ([]gateway.ShareInfo, error) {
	return nil, nil
}
func (f *fakeGateway) DeleteShare(ctx context.Context, id string) error { return nil }
func (f *fakeGateway) FetchShare(ctx context.Context, id, password string) (string, string, error) {
	return "", "", nil
}
func (f *fakeGateway) Ping(ctx context.Context) error { return nil }

var (
	testKey    = []byte("correct horse battery staple")
	anotherKey = []byte("a completely different secret")
)

// newLoadedSync returns a synchronizer with a bootstrapped tree and a
// clean op log.
func newLoadedSync(t *testing.T) (*Synchronizer, *fakeGateway) {
	t.Helper()

	gw := newFakeGateway()
	s := NewSynchronizer(gw)
	require.NoError(t, s.Load(context.Background(), testKey))
	gw.ops = nil
	return s, gw
}

// decryptTree decodes the remote tree blob with the given key.
func decryptTree(t *testing.T, gw *fakeGateway, key []byte) []string {
	t.Helper()

	plaintext, err := cryptox.Decrypt(gw.tree, key)
	require.NoError(t, err)
	set, err := pathtree.ParseSet(string(plaintext))
	require.NoError(t, err)
	return set.List()
}

func TestLoad_BootstrapsMissingTree(t *testing.T) {
	gw := newFakeGateway()
	s := NewSynchronizer(gw)

	require.NoError(t, s.Load(context.Background(), testKey))
	assert.True(t, s.Loaded())
	assert.Equal(t, []string{"default"}, s.List())

	// the bootstrap tree must land encrypted
	assert.Equal(t, []string{"default"}, decryptTree(t, gw, testKey))
}

func TestLoad_UpgradesPlaintextTree(t *testing.T) {
	gw := newFakeGateway()
	gw.tree = `["default","notes/todo"]`
	gw.treeSet = true

	s := NewSynchronizer(gw)
	require.NoError(t, s.Load(context.Background(), testKey))
	assert.Equal(t, []string{"default", "notes/todo"}, s.List())

	// first login re-persists the plaintext blob encrypted
	assert.Equal(t, []string{"default", "notes/todo"}, decryptTree(t, gw, testKey))
}

func TestLoad_WrongKey(t *testing.T) {
	gw := newFakeGateway()
	s := NewSynchronizer(gw)
	require.NoError(t, s.Load(context.Background(), testKey))

	assert.ErrorIs(t, NewSynchronizer(gw).Load(context.Background(), anotherKey), common.ErrInvalidKeyOrData)
}

func TestCreateFile(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	path, err := s.CreateFile(ctx, testKey, "Notes/To Do!", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "notes/todo", path)

	// content write strictly precedes the tree persist
	assert.Equal(t, []string{"put:notes/todo", "puttree"}, gw.ops)

	plaintext, err := cryptox.Decrypt(gw.content["notes/todo"], testKey)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", string(plaintext))

	assert.Contains(t, decryptTree(t, gw, testKey), "notes/todo")
}

func TestCreateFile_Conflict(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "x")
	require.NoError(t, err)
	gw.ops = nil

	_, err = s.CreateFile(ctx, testKey, "a", "y")
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Empty(t, gw.ops, "a rejected create must not touch the gateway")
}

func TestCreateFile_FileAndFolderNamesStayDisjoint(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "proj", "top level file")
	require.NoError(t, err)
	gw.ops = nil

	// a file may not silently become a folder through a nested create
	_, err = s.CreateFile(ctx, testKey, "proj/readme", "hello")
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Empty(t, gw.ops, "a rejected create must not touch the gateway")

	_, err = s.CreateFolder(ctx, testKey, "proj")
	assert.ErrorIs(t, err, common.ErrorConflict)

	// nor may a folder name be reused by a file
	_, err = s.CreateFolder(ctx, testKey, "docs")
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, testKey, "docs", "x")
	assert.ErrorIs(t, err, common.ErrorConflict)

	// every surviving entry renders in the tree and stays readable
	assert.Len(t, pathtree.BuildTree(s.List()), 3)
	got, err := s.LoadContent(ctx, testKey, "proj")
	require.NoError(t, err)
	assert.Equal(t, "top level file", got)
}

func TestCreateFile_InvalidName(t *testing.T) {
	s, gw := newLoadedSync(t)

	_, err := s.CreateFile(context.Background(), testKey, "!!!", "x")
	assert.ErrorIs(t, err, common.ErrInvalidName)
	assert.Empty(t, gw.ops)
}

func TestCreateFile_ContentPushFailureLeavesTreeUntouched(t *testing.T) {
	s, gw := newLoadedSync(t)
	gw.failPut["doomed"] = common.ErrorInternal

	_, err := s.CreateFile(context.Background(), testKey, "doomed", "x")
	require.Error(t, err)
	assert.Equal(t, []string{"put:doomed"}, gw.ops)
	assert.NotContains(t, s.List(), "doomed")
}

func TestCreateFolder(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	placeholder, err := s.CreateFolder(ctx, testKey, "work")
	require.NoError(t, err)
	assert.Equal(t, "work/default", placeholder)
	assert.Equal(t, []string{"put:work/default", "puttree"}, gw.ops)

	_, err = s.CreateFolder(ctx, testKey, "work")
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestRemove_File(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "x")
	require.NoError(t, err)
	gw.ops = nil

	require.NoError(t, s.Remove(ctx, testKey, "a"))
	assert.Equal(t, []string{"del:a", "puttree"}, gw.ops)
	assert.NotContains(t, s.List(), "a")
}

func TestRemove_FileDeleteFailureKeepsEntry(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "x")
	require.NoError(t, err)
	gw.ops = nil
	gw.failDel["a"] = common.ErrorInternal

	require.Error(t, s.Remove(ctx, testKey, "a"))
	assert.Equal(t, []string{"del:a"}, gw.ops, "tree must not be persisted after a failed delete")
	assert.Contains(t, s.List(), "a")
}

func TestRemove_Folder(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	for _, p := range []string{"work/a", "work/b", "keep"} {
		_, err := s.CreateFile(ctx, testKey, p, "x")
		require.NoError(t, err)
	}
	gw.ops = nil

	require.NoError(t, s.Remove(ctx, testKey, "work"))
	assert.Equal(t, []string{"del:work/a", "del:work/b", "puttree"}, gw.ops)
	assert.Equal(t, []string{"default", "keep"}, s.List())
}

func TestRemove_FolderPartialFailure(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	for _, p := range []string{"work/a", "work/b"} {
		_, err := s.CreateFile(ctx, testKey, p, "x")
		require.NoError(t, err)
	}
	gw.ops = nil
	gw.failDel["work/b"] = common.ErrorInternal

	require.Error(t, s.Remove(ctx, testKey, "work"))

	// best effort: work/a is already gone remotely, the path set and
	// the remote tree are unchanged
	assert.Equal(t, []string{"del:work/a", "del:work/b"}, gw.ops)
	assert.Contains(t, s.List(), "work/a")
	assert.Contains(t, s.List(), "work/b")
}

func TestFolderLifecycle(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, testKey, "proj")
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, testKey, "proj/readme", "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "proj/default", "proj/readme"}, s.List())

	require.NoError(t, s.Remove(ctx, testKey, "proj"))
	assert.Equal(t, []string{"default"}, s.List())

	// both blobs are gone remotely
	assert.NotContains(t, gw.content, "proj/default")
	assert.NotContains(t, gw.content, "proj/readme")
}

func TestRemove_Missing(t *testing.T) {
	s, _ := newLoadedSync(t)
	assert.ErrorIs(t, s.Remove(context.Background(), testKey, "nope"), common.ErrorNotFound)
}

func TestRename_File(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "old", "x")
	require.NoError(t, err)
	gw.ops = nil

	// a single file moves server-side, no blob round trip
	require.NoError(t, s.Rename(ctx, testKey, "old", "new"))
	assert.Equal(t, []string{"rename:old>new", "puttree"}, gw.ops)
	assert.Contains(t, s.List(), "new")
	assert.NotContains(t, s.List(), "old")

	plaintext, err := cryptox.Decrypt(gw.content["new"], testKey)
	require.NoError(t, err)
	assert.Equal(t, "x", string(plaintext))
}

func TestRename_FileServerFailureKeepsEntry(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "old", "x")
	require.NoError(t, err)
	gw.ops = nil
	gw.failRename["old"] = common.ErrorInternal

	require.Error(t, s.Rename(ctx, testKey, "old", "new"))
	assert.Equal(t, []string{"rename:old>new"}, gw.ops, "tree must not be persisted after a failed rename")
	assert.Contains(t, s.List(), "old")
	assert.NotContains(t, s.List(), "new")
}

func TestRename_FolderPersistsTreeOnce(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	for _, p := range []string{"work/a", "work/b"} {
		_, err := s.CreateFile(ctx, testKey, p, "x")
		require.NoError(t, err)
	}
	gw.ops = nil

	require.NoError(t, s.Rename(ctx, testKey, "work", "archive"))
	assert.Equal(t, []string{
		"get:work/a", "put:archive/a", "del:work/a",
		"get:work/b", "put:archive/b", "del:work/b",
		"puttree",
	}, gw.ops)
	assert.Equal(t, []string{"archive/a", "archive/b", "default"}, s.List())
}

func TestRename_ConflictAndMissing(t *testing.T) {
	s, gw := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "x")
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, testKey, "b", "y")
	require.NoError(t, err)
	gw.ops = nil

	assert.ErrorIs(t, s.Rename(ctx, testKey, "a", "b"), common.ErrorConflict)
	assert.Empty(t, gw.ops, "a rejected rename must not touch the gateway")

	// the target may not nest under an existing file either
	assert.ErrorIs(t, s.Rename(ctx, testKey, "b", "a/sub"), common.ErrorConflict)
	assert.Empty(t, gw.ops)

	assert.ErrorIs(t, s.Rename(ctx, testKey, "missing", "elsewhere"), common.ErrorNotFound)
}

func TestContent_RoundTrip(t *testing.T) {
	s, _ := newLoadedSync(t)
	ctx := context.Background()

	_, err := s.CreateFile(ctx, testKey, "a", "first")
	require.NoError(t, err)

	require.NoError(t, s.SaveContent(ctx, testKey, "a", "second"))

	got, err := s.LoadContent(ctx, testKey, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = s.LoadContent(ctx, anotherKey, "a")
	assert.ErrorIs(t, err, common.ErrInvalidKeyOrData)

	assert.ErrorIs(t, s.SaveContent(ctx, testKey, "missing", "x"), common.ErrorNotFound)
}
