package content

const iconBase = "https://win98icons.alexmeub.com/icons/png/"

// DefaultTree returns the desktop shipped with the server
func DefaultTree() *Tree {
	desktop := []*Item{
		{
			ID:       "resume",
			Name:     "Resume.pdf",
			Kind:     KindFile,
			Icon:     iconBase + "chm-0.png",
			App:      AppDocumentViewer,
			Resource: "assets/resume.pdf",
		},
		{
			ID:   "projects",
			Name: "Projects",
			Kind: KindFolder,
			Icon: iconBase + "directory_open_file_mydocs-4.png",
			App:  AppExplorer,
			Children: []*Item{
				{
					ID:     "proj1",
					Name:   "CloudLibrary-AWS-ObservaStack",
					Kind:   KindFile,
					Icon:   iconBase + "html-0.png",
					App:    AppEmbeddedViewer,
					Target: "https://github.com/AishwaryGathe/CloudLibrary-AWS-ObservaStack",
				},
				{
					ID:   "proj2",
					Name: "E-Commerce App",
					Kind: KindFile,
					Icon: iconBase + "html-0.png",
					App:  AppTextViewer,
					Body: "<h3>E-Commerce App</h3><p>A full-stack shopping platform built with React and Node.js.</p>",
				},
			},
		},
		{
			ID:   "videos",
			Name: "My Videos",
			Kind: KindFolder,
			Icon: iconBase + "video_file-2.png",
			App:  AppExplorer,
			Children: []*Item{
				{
					ID:     "vid1",
					Name:   "Coding Tutorial",
					Kind:   KindFile,
					Icon:   iconBase + "media_player_stream_no2-0.png",
					App:    AppEmbeddedViewer,
					Target: "https://www.youtube.com/embed/e-eR1hLLQGg",
				},
			},
		},
		{
			ID:     "github",
			Name:   "GitHub",
			Kind:   KindLink,
			Icon:   iconBase + "chm-0.png",
			App:    AppEmbeddedViewer,
			Target: "https://github.com/AishwaryGathe",
		},
		{
			ID:   "settings",
			Name: "Settings",
			Kind: KindApp,
			Icon: iconBase + "settings_gear-4.png",
			App:  AppSettings,
		},
		{
			ID:   "game",
			Name: "Tic-Tac-Toe",
			Kind: KindApp,
			Icon: iconBase + "game_freecell-0.png",
			App:  AppGame,
		},
	}

	tree, err := NewTree(Identity{Name: "Aishwary Gathe", Tagline: "Retro OS Portfolio"}, desktop)
	if err != nil {
		// The literal above has unique ids
		panic(err)
	}
	return tree
}
