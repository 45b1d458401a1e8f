package i18n

// entries maps a message key to its text in each supported language, in the
// order of supported.
var entries = map[string][2]string{
	"notice.missing.garm_img": {
		"Please upload a garment image.",
		"Silakan unggah foto pakaian.",
	},
	"notice.missing.human_img": {
		"Please upload your photo.",
		"Silakan unggah foto Anda.",
	},
	"notice.missing.garment_des": {
		"Please describe the garment.",
		"Silakan isi deskripsi pakaian.",
	},
	"notice.too_long.garment_des": {
		"The garment description must be at most %d characters.",
		"Deskripsi pakaian maksimal %d karakter.",
	},
	"notice.submission_failed": {
		"Failed to submit. Please try again.",
		"Gagal mengirim. Silakan coba lagi.",
	},
	"notice.unexpected": {
		"There was an error processing your request.",
		"Terjadi kesalahan saat memproses permintaan Anda.",
	},
	"notice.submit_disabled": {
		"A submission is already in progress.",
		"Pengiriman sedang berlangsung.",
	},
	"notice.not_image": {
		"Only image files are accepted.",
		"Hanya file gambar yang diterima.",
	},

	"page.title": {
		"Upload the suit image and your photo to see how you look in the suit",
		"Unggah foto setelan dan foto Anda untuk melihat penampilan Anda",
	},
	"page.garment.drop": {
		"Drag and drop a suit image here, or click to select one",
		"Seret dan lepas foto setelan di sini, atau klik untuk memilih",
	},
	"page.photo.drop": {
		"Drag and drop your photo here, or click to select one",
		"Seret dan lepas foto Anda di sini, atau klik untuk memilih",
	},
	"page.description": {
		"Garment description",
		"Deskripsi pakaian",
	},
	"page.submit": {
		"Submit",
		"Kirim",
	},
	"page.submitting": {
		"Submitting…",
		"Mengirim…",
	},
	"page.result": {
		"Result",
		"Hasil",
	},

	"bot.start": {
		"👔 Try-on bot\n\nSend a garment photo and your photo, describe the garment, then press Submit.\n\nCommands:\n/garment - next photo is the garment\n/photo - next photo is you\n/status - show what is staged\n/submit - send for try-on\n/help - help",
		"👔 Bot coba pakaian\n\nKirim foto pakaian dan foto Anda, tulis deskripsi pakaian, lalu tekan Kirim.\n\nPerintah:\n/garment - foto berikutnya adalah pakaian\n/photo - foto berikutnya adalah Anda\n/status - tampilkan data\n/submit - kirim\n/help - bantuan",
	},
	"bot.help": {
		"Send two photos as an album (garment first, then you) with the description as caption, or send them one by one after /garment and /photo. Any text message becomes the description.",
		"Kirim dua foto sebagai album (pakaian dulu, lalu Anda) dengan deskripsi sebagai keterangan, atau kirim satu per satu setelah /garment dan /photo. Pesan teks apa pun menjadi deskripsi.",
	},
	"bot.next.garm_img": {
		"📷 Send the garment photo.",
		"📷 Kirim foto pakaian.",
	},
	"bot.next.human_img": {
		"📷 Send your photo.",
		"📷 Kirim foto Anda.",
	},
	"bot.pick_slot": {
		"Both photos are already set. Use /garment or /photo to replace one.",
		"Kedua foto sudah ada. Gunakan /garment atau /photo untuk menggantinya.",
	},
	"bot.download_failed": {
		"❌ Could not download the photo.",
		"❌ Gagal mengunduh foto.",
	},
	"bot.submitting": {
		"⏳ Submitting, please wait…",
		"⏳ Mengirim, mohon tunggu…",
	},
	"bot.result": {
		"✅ Here is your try-on result.",
		"✅ Ini hasil coba pakaian Anda.",
	},
	"bot.unknown": {
		"❌ Unknown command. Use /help.",
		"❌ Perintah tidak dikenal. Gunakan /help.",
	},
	"bot.panel.title": {
		"👔 Try-on",
		"👔 Coba pakaian",
	},
	"bot.panel.garment": {
		"Garment: %s",
		"Pakaian: %s",
	},
	"bot.panel.photo": {
		"Photo: %s",
		"Foto: %s",
	},
	"bot.panel.description": {
		"Description: %s",
		"Deskripsi: %s",
	},
	"bot.panel.none": {
		"(none)",
		"(belum ada)",
	},
	"bot.panel.loading": {
		"⏳ Submitting…",
		"⏳ Mengirim…",
	},
	"bot.button.garment": {
		"👔 Garment",
		"👔 Pakaian",
	},
	"bot.button.photo": {
		"🧍 Photo",
		"🧍 Foto",
	},
	"bot.saved.garm_img": {
		"✅ Garment photo saved.",
		"✅ Foto pakaian disimpan.",
	},
	"bot.saved.human_img": {
		"✅ Your photo saved.",
		"✅ Foto Anda disimpan.",
	},
}
