package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/lostfound/config"
	"github.com/cppla/lostfound/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db,
		&models.User{},
		&models.LostItemPost{},
		&models.FoundItemPost{},
		&models.ShareItemPost{},
		&models.NoticePost{},
		&models.Comment{},
	))
	return db
}

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	dir      string
	users    *UserService
	uploads  *UploadHandler
	lost     *ListingService[models.LostItemPost, *models.LostItemPost]
	found    *ListingService[models.FoundItemPost, *models.FoundItemPost]
	share    *ListingService[models.ShareItemPost, *models.ShareItemPost]
	notices  *ListingService[models.NoticePost, *models.NoticePost]
	comments *CommentService
}

func newFixture(t *testing.T, adminIDs ...string) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	dir := t.TempDir()

	f := &fixture{ctx: context.Background(), db: db, dir: dir}
	f.users = NewUserService(db, adminIDs, log)
	f.uploads = NewUploadHandler(NewLocalStorage(dir), 1<<20, log)
	f.lost = NewListingService(db, f.users, f.uploads, LostItems, log)
	f.found = NewListingService(db, f.users, f.uploads, FoundItems, log)
	f.share = NewListingService(db, f.users, f.uploads, ShareItems, log)
	f.notices = NewListingService(db, f.users, f.uploads, Notices, log)
	f.comments = NewCommentService(db, f.users, map[models.CommentCategory]PostChecker{
		models.CategoryLostItem:  f.lost,
		models.CategoryFoundItem: f.found,
		models.CategoryShareItem: f.share,
	}, log)
	return f
}

// addUser inserts a confirmed account directly, skipping bcrypt.
func (f *fixture) addUser(t *testing.T, id string, admin bool) *models.User {
	t.Helper()
	u := &models.User{
		UserID:       id,
		PasswordHash: "x",
		UserName:     "name-" + id,
		PhoneNumber:  "010-" + id,
		IsAdmin:      admin,
		IsConfirmed:  true,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func lostPost(title, location string) *models.LostItemPost {
	return &models.LostItemPost{
		PostBase:    models.PostBase{Title: title, Content: "please contact me"},
		ItemDetails: models.ItemDetails{ItemName: "wallet", Location: location, ItemTime: "lunch"},
	}
}

type upload struct {
	name string
	data []byte
}

// fileHeaders builds real multipart headers the way net/http would parse them.
func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}
