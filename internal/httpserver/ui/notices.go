package ui

// Notices flashed by the handlers. They are Turkish source strings; the
// locale catalogs translate them on display.
const (
	noticeAccountNotFound   = "Hesap bulunamadı!"
	noticeAccountsFailed    = "Hesaplar yüklenemedi!"
	noticeOrdersFailed      = "Siparişler yüklenemedi!"
	noticeAnalyticsFailed   = "İstatistikler yüklenemedi!"
	noticeSessionExpired    = "Bu sayfayı görüntülemek için giriş yapmalısınız!"
	noticeTooManyAttempts   = "Çok fazla deneme yaptınız, lütfen biraz bekleyin."
	noticeContactMissing    = "WhatsApp numarası ayarlanmamış!"
	noticeIBANMissing       = "IBAN bilgisi ayarlanmamış!"
	noticeCardMissing       = "Shopier entegrasyonu yapılmamış!"
	noticeCardFailed        = "Ödeme başlatılamadı!"
	noticeIBANCopied        = "IBAN kopyalandı! WhatsApp'tan dekont gönderin."
	noticeCategoryAdded     = "✅ Kategori başarıyla eklendi!"
	noticeCategoryAddFailed = "❌ Kategori eklenirken hata oluştu!"
	noticeCategoryDeleted   = "✅ Kategori silindi!"
	noticeCategoryDelFailed = "❌ Kategori silinirken hata oluştu!"
	noticeAccountAdded      = "✅ Hesap başarıyla eklendi!"
	noticeAccountAddFailed  = "❌ Hesap eklenirken hata oluştu!"
	noticeAccountUpdated    = "✅ Hesap başarıyla güncellendi!"
	noticeAccountUpdFailed  = "❌ Hesap güncellenirken hata oluştu!"
	noticeAccountDeleted    = "✅ Hesap başarıyla silindi!"
	noticeAccountDelFailed  = "❌ Hesap silinirken hata oluştu!"
	noticeSettingsSaved     = "✅ Ayarlar başarıyla güncellendi!"
	noticeSettingsFailed    = "❌ Ayarlar güncellenirken hata oluştu!"
	noticeImageRemoved      = "Resim kaldırıldı"
	noticeVideoRemoved      = "Video kaldırıldı"
)
