package config

const (
	defaultStagingDir        = "~/.local/share/kamishibai/staging"
	defaultLogDir            = "~/.local/share/kamishibai/logs"
	defaultRegion            = "auto"
	defaultLedgerKey         = "youtube_published.txt"
	defaultLedgerBackend     = "remote"
	defaultClientSecretsFile = "~/.config/kamishibai/client_secrets.json"
	defaultTokenFile         = "~/.config/kamishibai/token.json"
	defaultCategoryID        = "24"
	defaultPrivacyStatus     = "private"
	defaultTitleFormat       = "昔話【%s】"
	defaultTemplateImage     = "thumbnail_template.jpg"
	defaultFontPath          = "/usr/share/fonts/truetype/noto/NotoSansCJK-Bold.ttc"
	defaultStartDate         = "2025-12-27"
	defaultVideosPerDay      = 2
	defaultPublishTime       = "09:00:00"
	defaultUTCOffset         = "+09:00"
	defaultChunkSizeMiB      = 8
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "auto"
	defaultLogLevel          = "info"
)

var defaultTags = []string{"昔話", "民話", "日本の昔話", "読み聞かせ", "ひさこばあば"}

const defaultDescriptionTemplate = `昔話「{title}」をお届けします。

昭和6年（1931年）生まれ、ひさこばあばが語る日本の民話です。

🎙️ ブログ「90代万歳」
https://hisakobaab.exblog.jp/

📚 全863話を毎日配信中

🎧 Podcastでも配信中
https://pub-b419a653b80e45909d7db83acfedce2c.r2.dev/podcast.xml

#昔話 #民話 #日本の昔話 #読み聞かせ #ひさこばあば
`

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Storage: Storage{
			Region:    defaultRegion,
			LedgerKey: defaultLedgerKey,
		},
		YouTube: YouTube{
			ClientSecretsFile:   defaultClientSecretsFile,
			TokenFile:           defaultTokenFile,
			CategoryID:          defaultCategoryID,
			PrivacyStatus:       defaultPrivacyStatus,
			Tags:                append([]string(nil), defaultTags...),
			TitleFormat:         defaultTitleFormat,
			DescriptionTemplate: defaultDescriptionTemplate,
			MadeForKids:         false,
			ChunkSizeMiB:        defaultChunkSizeMiB,
		},
		Thumbnail: Thumbnail{
			TemplateImage: defaultTemplateImage,
			FontPath:      defaultFontPath,
		},
		Schedule: Schedule{
			StartDate:    defaultStartDate,
			VideosPerDay: defaultVideosPerDay,
			PublishTime:  defaultPublishTime,
			UTCOffset:    defaultUTCOffset,
		},
		Ledger: Ledger{
			Backend: defaultLedgerBackend,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
