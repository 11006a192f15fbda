package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix          = "user:%d"
	PostKeyPrefix          = "post:%d"
	ProfileByUserKeyPrefix = "profile:user:%d"
	ProfileByHandlePrefix  = "profile:handle:%s"
)

const (
	UserTTL    = 5 * time.Minute
	ProfileTTL = 10 * time.Minute
	PostTTL    = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProfileByUserKey(userID uint) string {
	return fmt.Sprintf(ProfileByUserKeyPrefix, userID)
}

func ProfileByHandleKey(handle string) string {
	return fmt.Sprintf(ProfileByHandlePrefix, handle)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateProfile drops both lookup paths for a profile.
func InvalidateProfile(ctx context.Context, userID uint, handle string) {
	Invalidate(ctx, ProfileByUserKey(userID))
	if handle != "" {
		Invalidate(ctx, ProfileByHandleKey(handle))
	}
}
